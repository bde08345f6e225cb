package ordernum

import (
	"fmt"
	"math/rand"
	"time"
)

// Generate возвращает человекочитаемый номер заказа вида PREFIX-YYYYMMDD-NNNNN,
// где NNNNN — случайное пятизначное число с ведущими нулями.
// Уникальность обеспечивается не здесь, а уникальным индексом в БД
// и повторной генерацией при конфликте (см. service.PrepareService).
func Generate(prefix string, now time.Time) string {
	suffix := rand.Intn(100000)
	return fmt.Sprintf("%s-%s-%05d", prefix, now.Format("20060102"), suffix)
}
