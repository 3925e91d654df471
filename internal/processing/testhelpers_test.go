package processing

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"

	"pricecheck/internal/domain/models"
)

// fakeOffers генерирует n случайных предложений с фиксированным seed
func fakeOffers(seed int64, n int) []models.Offer {
	faker := gofakeit.New(seed)
	brands := []string{"Bosch", "Mann", "Febi", "Lemforder"}
	stores := []string{"Шоп-1", "Автодок", "Запчасть.ру", "Магазин 24"}
	descrs := []string{"в наличии", "Гарантия наличия", "под заказ", "с гарантией отгрузки", ""}

	offers := make([]models.Offer, 0, n)
	for i := 0; i < n; i++ {
		offers = append(offers, models.Offer{
			Price:        models.Number(faker.Float64Range(10, 50000)),
			Qty:          models.Number(faker.Number(-5, 100)),
			QtyDescr:     descrs[faker.Number(0, len(descrs)-1)],
			Category:     fmt.Sprintf("%s %d", faker.Word(), i),
			Store:        stores[faker.Number(0, len(stores)-1)],
			PaymentTerms: faker.Word(),
			DeliveryDays: models.Number(faker.Number(0, 10)),
			InStock:      models.Number(faker.Number(0, 1)),
			Rating:       models.Number(faker.Number(0, 5)),
			Brand:        brands[faker.Number(0, len(brands)-1)],
		})
	}
	return offers
}
