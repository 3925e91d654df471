package priceapi

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"pricecheck/internal/domain/models"
)

// xmlEncodingDecl объявление кодировки в прологе XML
var xmlEncodingDecl = regexp.MustCompile(`^\s*<\?xml[^>]*encoding=`)

// decodeEnvelope распаковывает ответ сервиса: XML, текст корневого элемента
// которого является JSON-документом.
func decodeEnvelope(body []byte, contentType string) (*models.PriceResponse, error) {
	text, err := rootText(body, contentType)
	if err != nil {
		return nil, err
	}

	var resp models.PriceResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayload, err)
	}
	return &resp, nil
}

// rootText возвращает собственный текст корневого элемента XML
func rootText(body []byte, contentType string) (string, error) {
	var reader io.Reader = bytes.NewReader(body)

	// Кодировка из Content-Type применяется, только если пролог ее не объявляет
	if label := contentCharset(contentType); label != "" && !xmlEncodingDecl.Match(body) {
		converted, err := charset.NewReaderLabel(label, reader)
		if err != nil {
			return "", fmt.Errorf("%w: unsupported charset %q", ErrEnvelope, label)
		}
		reader = converted
	}

	decoder := xml.NewDecoder(reader)
	decoder.CharsetReader = charset.NewReaderLabel

	var (
		text  strings.Builder
		depth int
		root  bool
	)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrEnvelope, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				if root {
					return "", fmt.Errorf("%w: multiple root elements", ErrEnvelope)
				}
				root = true
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 1 {
				text.Write(t)
			}
		}
	}

	if !root {
		return "", fmt.Errorf("%w: no root element", ErrEnvelope)
	}
	result := strings.TrimSpace(text.String())
	if result == "" {
		return "", fmt.Errorf("%w: root element has no text", ErrEnvelope)
	}
	return result, nil
}

// contentCharset кодировка из заголовка Content-Type, кроме UTF-8
func contentCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	label := strings.ToLower(strings.TrimSpace(params["charset"]))
	if label == "" || label == "utf-8" || label == "utf8" {
		return ""
	}
	return label
}

// summarizeBody короткое описание тела ответа для лога.
// HTML-страницы ошибок сводятся к заголовку и первому абзацу.
func summarizeBody(body []byte, contentType string) string {
	const maxLen = 200

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	if isHTML(trimmed, contentType) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(trimmed))
		if err == nil {
			parts := make([]string, 0, 2)
			if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
				parts = append(parts, title)
			}
			if heading := strings.TrimSpace(doc.Find("h1, h2, p").First().Text()); heading != "" && (len(parts) == 0 || heading != parts[0]) {
				parts = append(parts, heading)
			}
			if len(parts) > 0 {
				return truncate(strings.Join(parts, ": "), maxLen)
			}
		}
	}

	return truncate(strings.Join(strings.Fields(string(trimmed)), " "), maxLen)
}

func isHTML(body []byte, contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	prefix := strings.ToLower(string(body[:min(len(body), 64)]))
	return strings.HasPrefix(prefix, "<!doctype html") || strings.HasPrefix(prefix, "<html")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
