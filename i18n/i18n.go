// Package i18n holds the user-facing message catalog. Portuguese (Brazil) is
// the default locale; English is the only other supported locale.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. The key doubles as the English source text.
const (
	MsgConverterNotConfigured = "Conversion service is not configured."
	MsgZPLRequired            = "ZPL content is required"
	MsgZPLTooLarge            = "ZPL content is too large"
	MsgConversionFailed       = "Failed to convert ZPL to PDF. Check that the ZPL content is valid."
	MsgInternalError          = "Internal server error. Please try again."
	MsgProxyNotConfigured     = "PDF proxy is not configured."
	MsgURLRequired            = "URL is required"
	MsgInvalidDomain          = "Invalid URL domain"
	MsgFetchFailed            = "Failed to fetch PDF"
	MsgFetchError             = "Error fetching PDF"
	MsgConvertFallback        = "Conversion failed"
	MsgUnknownError           = "Unknown error. Please try again."
	MsgPreviewUnavailable     = "Could not load the PDF preview."
)

// DefaultLocale is used when nothing better can be negotiated
var DefaultLocale = language.BrazilianPortuguese

var supported = []language.Tag{
	language.BrazilianPortuguese,
	language.English,
}

var matcher = language.NewMatcher(supported)

var ptBR = map[string]string{
	MsgConverterNotConfigured: "Serviço de conversão não configurado.",
	MsgZPLRequired:            "O conteúdo ZPL é obrigatório",
	MsgZPLTooLarge:            "O conteúdo ZPL é grande demais",
	MsgConversionFailed:       "Falha ao converter ZPL para PDF. Verifique se o conteúdo ZPL é válido.",
	MsgInternalError:          "Erro interno do servidor. Tente novamente.",
	MsgProxyNotConfigured:     "Proxy de PDF não configurado.",
	MsgURLRequired:            "A URL é obrigatória",
	MsgInvalidDomain:          "Domínio da URL inválido",
	MsgFetchFailed:            "Falha ao buscar o PDF",
	MsgFetchError:             "Erro ao buscar PDF",
	MsgConvertFallback:        "Falha na conversão",
	MsgUnknownError:           "Erro desconhecido. Tente novamente.",
	MsgPreviewUnavailable:     "Não foi possível carregar o preview do PDF.",
}

func init() {
	for key, text := range ptBR {
		if err := message.SetString(language.BrazilianPortuguese, key, text); err != nil {
			panic(fmt.Sprintf("i18n: registering %q: %v", key, err))
		}
		if err := message.SetString(language.English, key, key); err != nil {
			panic(fmt.Sprintf("i18n: registering %q: %v", key, err))
		}
	}
}

// Translator renders catalog messages for one locale
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New creates a Translator for tag, falling back to the closest supported locale
func New(tag language.Tag) *Translator {
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		tag = DefaultLocale
	} else {
		tag = supported[idx]
	}
	return &Translator{tag: tag, printer: message.NewPrinter(tag)}
}

// T returns the message for key in the translator's locale
func (t *Translator) T(key string) string {
	return t.printer.Sprintf(key)
}

// Locale returns the negotiated locale
func (t *Translator) Locale() language.Tag {
	return t.tag
}

// Negotiate picks a supported locale from an Accept-Language header value
func Negotiate(acceptLanguage string, fallback language.Tag) language.Tag {
	if acceptLanguage == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return supported[idx]
}

// ParseLocale parses a BCP 47 locale name such as "pt-BR" or "en"
func ParseLocale(locale string) (language.Tag, error) {
	if locale == "" {
		return DefaultLocale, nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.Und, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return tag, nil
}
