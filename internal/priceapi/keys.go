package priceapi

import (
	"strings"
	"sync/atomic"
)

// KeyPool выдает ключи API по кругу
type KeyPool struct {
	keys []string
	next atomic.Uint64
}

// NewKeyPool создает пул из непустых ключей
func NewKeyPool(keys []string) *KeyPool {
	pool := &KeyPool{keys: make([]string, 0, len(keys))}
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			pool.keys = append(pool.keys, k)
		}
	}
	return pool
}

// Len количество ключей в пуле
func (p *KeyPool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Next возвращает следующий ключ; пустая строка, если пул пуст
func (p *KeyPool) Next() string {
	if p.Len() == 0 {
		return ""
	}
	n := p.next.Add(1) - 1
	return p.keys[n%uint64(len(p.keys))]
}
