package models

type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	OwnerID     int64  `json:"-"`
	RequestID   int64  `json:"requestId,omitempty"` // запрос, по которому создана вещь (0 = без запроса)
}
