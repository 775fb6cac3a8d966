package repoargs

type RepositoryName string

const (
	UserRepoName           RepositoryName = "user"
	OrderRepoName          RepositoryName = "order"
	TransactionRepoName    RepositoryName = "transaction"
	DepositRepoName        RepositoryName = "deposit_request"
	CarrierRepoName        RepositoryName = "carrier"
	SavedRecipientRepoName RepositoryName = "saved_recipient"
	NotificationRepoName   RepositoryName = "notification"
)

// Page параметры постраничной выборки. Номер страницы считается с единицы.
type Page struct {
	Number int64
	Limit  int64
}

func (p Page) Offset() int64 {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}
