package handlers

// userMessages holds the short caller-facing texts per locale. The locale
// comes from the i18n middleware; English is the fallback for anything
// missing.
var userMessages = map[string]map[string]string{
	"en": {
		"style_locked":   "this style requires a subscription",
		"quota_exceeded": "free generations used up",
	},
	"ja": {
		"style_locked":   "このスタイルのご利用にはサブスクリプションが必要です",
		"quota_exceeded": "無料生成回数を使い切りました",
	},
	"ko": {
		"style_locked":   "이 스타일은 구독이 필요합니다",
		"quota_exceeded": "무료 생성 횟수를 모두 사용했습니다",
	},
	"fr": {
		"style_locked":   "ce style nécessite un abonnement",
		"quota_exceeded": "générations gratuites épuisées",
	},
	"de": {
		"style_locked":   "dieser Stil erfordert ein Abonnement",
		"quota_exceeded": "kostenlose Generierungen aufgebraucht",
	},
	"es": {
		"style_locked":   "este estilo requiere una suscripción",
		"quota_exceeded": "generaciones gratuitas agotadas",
	},
	"pt": {
		"style_locked":   "este estilo requer uma assinatura",
		"quota_exceeded": "gerações gratuitas esgotadas",
	},
}

func userMessage(locale, key string) string {
	if m, ok := userMessages[locale]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	return userMessages["en"][key]
}
