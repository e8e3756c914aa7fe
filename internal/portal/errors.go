package portal

import "errors"

// Таксономія помилок data client'а. Кожна віддалена помилка
// класифікується за причиною; все некласифіковане вважається
// transient і отримує рівно один silent retry.
var (
	// ErrNotFound запитаний ідентифікатор не існує у віддаленому сховищі
	ErrNotFound = errors.New("record not found")

	// ErrInvalidCredentials пароль не співпав. UI показує її так само
	// як ErrNotFound щоб не розрізняти "невірний id" від "невірний пароль"
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateID створення запису з id який вже існує
	ErrDuplicateID = errors.New("identifier already exists")

	// ErrForbidden операція недоступна для поточної ролі
	// (або чат вимкнений оператором)
	ErrForbidden = errors.New("operation not permitted")

	// ErrTransient мережевий збій після вичерпання retry
	ErrTransient = errors.New("transient network failure")

	// ErrNotAuthenticated операція потребує активної сесії
	ErrNotAuthenticated = errors.New("not authenticated")
)
