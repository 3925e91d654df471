package processing

import (
	"strings"
	"sync"
	"unicode"

	"github.com/kljensen/snowball"
)

// guaranteeWord слово, наличие которого в описании количества означает гарантию наличия
const guaranteeWord = "гарантия"

var (
	guaranteeOnce sync.Once
	guaranteeStem string

	stemCache   = make(map[string]string)
	stemCacheMu sync.RWMutex
)

// MentionsGuarantee сообщает, что описание количества упоминает гарантию
// в любой словоформе ("гарантия", "с гарантией", "Гарантированно").
func MentionsGuarantee(descr string) bool {
	lower := strings.ToLower(descr)
	if strings.Contains(lower, guaranteeWord) {
		return true
	}

	guaranteeOnce.Do(func() {
		guaranteeStem = stem(guaranteeWord)
	})

	for _, token := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if strings.HasPrefix(stem(token), guaranteeStem) {
			return true
		}
	}
	return false
}

// stem возвращает основу русского слова с кэшированием
func stem(word string) string {
	stemCacheMu.RLock()
	cached, ok := stemCache[word]
	stemCacheMu.RUnlock()
	if ok {
		return cached
	}

	stemmed, err := snowball.Stem(word, "russian", true)
	if err != nil {
		stemmed = word
	}

	stemCacheMu.Lock()
	stemCache[word] = stemmed
	stemCacheMu.Unlock()
	return stemmed
}
