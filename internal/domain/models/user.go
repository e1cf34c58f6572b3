package models

// User представляет учетную запись, от имени которой действует клиент
type User struct {
	ID       int64
	Email    string
	PassHash []byte
}
