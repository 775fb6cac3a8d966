package repoargs

type SavedRecipientSave struct {
	ID       string
	UserID   int64
	Name     string
	Phone    string
	City     string
	District string
	Address  string
}
