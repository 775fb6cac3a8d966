package service

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	orderCodePrefix    = "KRG"
	trackingCodePrefix = "TRK"

	trackingCodeLength = 9
	trackingAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// newOrderCode генерирует человекочитаемый код заказа вида KRG-202608-4821.
// Уникальность гарантирует не генератор, а уникальный индекс в базе: при
// коллизии вставка падает и вызывающая сторона генерирует код заново.
func newOrderCode(now time.Time) string {
	return fmt.Sprintf("%s-%s-%04d", orderCodePrefix, now.Format("200601"), rand.IntN(10000)) //nolint:gosec
}

// newTrackingCode генерирует публичный трек-код вида TRK7F2K9Q1ZC.
func newTrackingCode() string {
	var b strings.Builder
	b.WriteString(trackingCodePrefix)
	for range trackingCodeLength {
		b.WriteByte(trackingAlphabet[rand.IntN(len(trackingAlphabet))]) //nolint:gosec
	}
	return b.String()
}
