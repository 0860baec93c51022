package memory

import "github.com/ariefcatur/electroshop-orders/internal/orders"

// Seed loads the demo catalogue used in dev mode.
func Seed(s *Store) {
	s.PutClient(orders.Client{ID: "1234567", Name: "Juan Pérez", Age: 30, Address: "Calle 123 #45-67"})
	s.PutPaymentMethod(orders.PaymentMethod{ID: 1, Name: "Tarjeta de crédito"})
	s.PutCategory(orders.ProductCategory{ID: 1, Name: "Televisores"})
	s.PutCategory(orders.ProductCategory{ID: 2, Name: "Audio"})
	s.PutProduct(orders.Product{ID: 1, Name: "Televisor 50 pulgadas", Price: 1000, CategoryID: 1}, 10)
	s.PutProduct(orders.Product{ID: 2, Name: "Barra de sonido", Price: 350, CategoryID: 2}, 5)
}
