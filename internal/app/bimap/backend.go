package bimap

import "context"

// ReadTx даёт согласованный срез обоих индексов.
type ReadTx interface {
	// TokenOf ищет токен по длинному значению (прямой индекс).
	TokenOf(ctx context.Context, longValue string) (token string, ok bool, err error)
	// LongOf ищет длинное значение по токену (обратный индекс).
	LongOf(ctx context.Context, token string) (longValue string, ok bool, err error)
	// ForEachToken обходит обратный индекс.
	ForEachToken(ctx context.Context, fn func(token, longValue string) error) error
	// ForEachLong обходит прямой индекс.
	ForEachLong(ctx context.Context, fn func(longValue, token string) error) error
}

// Tx - транзакция на запись. Все изменения индексов идут только через неё.
type Tx interface {
	ReadTx
	// InsertTokenIfAbsent добавляет запись в обратный индекс, если токен свободен.
	InsertTokenIfAbsent(ctx context.Context, token, longValue string) (bool, error)
	// InsertLongIfAbsent добавляет запись в прямой индекс, если значение ещё не занято.
	InsertLongIfAbsent(ctx context.Context, longValue, token string) (bool, error)
	// DeleteToken удаляет запись обратного индекса. Используется только для отката.
	DeleteToken(ctx context.Context, token string) error
}

// Backend хранит оба индекса и задаёт границу атомарности.
//
// Update выполняет fn атомарно: если fn вернула ошибку, ни одно изменение
// не должно стать видимым. View выполняет fn на согласованном снимке.
type Backend interface {
	Update(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx ReadTx) error) error
}

// TokenGenerator выдаёт кандидатов в токены.
type TokenGenerator interface {
	Generate() (string, error)
}
