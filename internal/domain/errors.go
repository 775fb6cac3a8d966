package domain

import "errors"

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrPasswordMissMatch = errors.New("password mismatch")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrUnknown           = errors.New("unknown error")

	ErrNotEnoughBalance = errors.New("not enough balance")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNegativeBalance  = errors.New("balance can not become negative")
	// ErrDepositProcessed возвращается при попытке повторной обработки заявки
	// на пополнение, уже находящейся в терминальном статусе.
	ErrDepositProcessed = errors.New("deposit request already processed")
	// ErrCodeGenerationExhausted возвращается когда все попытки сгенерировать
	// уникальный код заказа исчерпаны.
	ErrCodeGenerationExhausted = errors.New("order code generation exhausted")
)
