package utils

// Server-side messages for fixed keys. Error keys match ServiceError kinds
// so the API can localize refusals; page copy lives in the front-end.

var translations = map[string]map[string]string{
	"en": {
		"health.ok":                 "ok",
		"error.invalid_input":       "Please check the submitted form.",
		"error.invalid_session":     "Test session not found.",
		"error.invalid_category":    "Invalid test type.",
		"error.invalid_score":       "Score must be between 0 and 25.",
		"error.no_active_session":   "No active test session.",
		"error.session_not_found":   "Test session not found.",
		"error.session_completed":   "This test session is already completed.",
		"error.incomplete_session":  "Please finish all four tests before completing the assessment.",
		"error.access_denied":       "Report not found or access denied.",
		"error.report_not_ready":    "The report is available once the assessment is completed.",
		"error.duplicate_identity":  "Email address already registered. Please use a different email.",
		"error.out_of_range_age":    "This assessment is designed for children aged 8-12 years.",
		"error.invalid_credentials": "Invalid email or password.",
		"error.unauthorized":        "Please log in to access this page.",
		"error.user_not_found":      "Account not found.",
		"error.internal":            "Something went wrong. Please try again.",
	},
	"zh": {
		"health.ok":                 "好的",
		"error.invalid_input":       "请检查提交的表单。",
		"error.invalid_session":     "未找到测试会话。",
		"error.invalid_category":    "无效的测试类型。",
		"error.invalid_score":       "分数必须在 0 到 25 之间。",
		"error.no_active_session":   "当前没有进行中的测试。",
		"error.session_not_found":   "未找到测试会话。",
		"error.session_completed":   "该测试会话已完成。",
		"error.incomplete_session":  "请先完成全部四项测试。",
		"error.access_denied":       "报告不存在或无权访问。",
		"error.report_not_ready":    "评估完成后才能下载报告。",
		"error.duplicate_identity":  "该邮箱已注册，请使用其他邮箱。",
		"error.out_of_range_age":    "本评估适用于 8 至 12 岁儿童。",
		"error.invalid_credentials": "邮箱或密码错误。",
		"error.unauthorized":        "请先登录。",
		"error.user_not_found":      "账户不存在。",
		"error.internal":            "出错了，请稍后重试。",
	},
}

// T returns the translated string for key in locale; falls back to English.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := translations[DefaultLocale][key]; ok {
		return v
	}
	return key
}

// HasKey reports whether key has an English translation.
func HasKey(key string) bool {
	_, ok := translations[DefaultLocale][key]
	return ok
}
