package services

// Info is the static educational content shown next to the tests.
type Info struct {
	Symptoms []string `json:"symptoms"`
	FunFacts []string `json:"fun_facts"`
}

var adhdInfo = Info{
	Symptoms: []string{
		"Difficulty paying attention to details",
		"Trouble staying focused on tasks",
		"Often seems not to listen",
		"Difficulty following instructions",
		"Problems organizing tasks",
		"Loses things frequently",
		"Easily distracted",
		"Forgetful in daily activities",
		"Fidgets or squirms",
		"Difficulty staying seated",
		"Talks excessively",
		"Interrupts or intrudes on others",
	},
	FunFacts: []string{
		"ADHD affects about 1 in 10 children",
		"It's not caused by too much sugar or screen time",
		"Many successful people have ADHD",
		"With proper support, children with ADHD can thrive",
	},
}

// ADHDInfo returns a copy of the educational content.
func ADHDInfo() Info {
	return Info{
		Symptoms: append([]string(nil), adhdInfo.Symptoms...),
		FunFacts: append([]string(nil), adhdInfo.FunFacts...),
	}
}
