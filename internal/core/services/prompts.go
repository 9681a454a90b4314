package services

import "github.com/izu-labs/izuchat/internal/core/domain"

// System instructions constrain the model to answer only from supplied
// context and to say so when the context has nothing relevant. This is
// a prompting contract, not a mechanical guarantee; the evaluation
// harness measures adherence empirically.
const (
	systemPromptTurkish = `Sen İstanbul Sabahattin Zaim Üniversitesi (İZÜ) için bir yardımcı asistansın.
Sadece verilen bilgileri kullanarak soruları cevapla.
Eğer bilgi yoksa, "Bu konuda detaylı bilgi bulunamadı" de.
Cevaplarını net, kısa ve yardımcı tut.`

	systemPromptEnglish = `You are a helpful assistant for Istanbul Sabahattin Zaim University (IZU).
Answer questions using only the provided information.
If you don't have information, say "I don't have detailed information about this."
Keep answers clear, concise, and helpful.`
)

// systemPromptFor picks the instruction matching the request language.
// Turkish is the default.
func systemPromptFor(lang domain.Language) string {
	if lang == domain.LanguageEnglish {
		return systemPromptEnglish
	}
	return systemPromptTurkish
}
