package views

import "github.com/arturomz/bank-records-go/pkg/models"

type AccountCreateRequest struct {
	AccountNumber string  `json:"account_number" binding:"required"`
	Balance       float64 `json:"balance" binding:"gte=0"`
	AccountTypeID int64   `json:"account_type_id" binding:"required"`
	UserID        int64   `json:"user_id" binding:"required"`
}

type AccountTypeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type AccountResponse struct {
	ID            int64               `json:"id"`
	AccountNumber string              `json:"account_number"`
	Balance       float64             `json:"balance"`
	AccountTypeID int64               `json:"account_type_id"`
	UserID        int64               `json:"user_id"`
	User          UserResponse        `json:"user"`
	AccountType   AccountTypeResponse `json:"account_type"`
}

func ToAccountTypeResponse(at models.AccountType) AccountTypeResponse {
	return AccountTypeResponse{ID: at.ID, Name: at.Name}
}

func ToAccountTypeResponses(types []models.AccountType) []AccountTypeResponse {
	out := make([]AccountTypeResponse, 0, len(types))
	for _, at := range types {
		out = append(out, ToAccountTypeResponse(at))
	}
	return out
}

// ToAccountResponse expects an account loaded with its user and type joined.
func ToAccountResponse(account models.Account) AccountResponse {
	resp := AccountResponse{
		ID:            account.ID,
		AccountNumber: account.AccountNumber,
		Balance:       account.Balance,
		AccountTypeID: account.AccountTypeID,
		UserID:        account.UserID,
	}
	if account.User != nil {
		resp.User = ToUserResponse(*account.User)
	}
	if account.AccountType != nil {
		resp.AccountType = ToAccountTypeResponse(*account.AccountType)
	}
	return resp
}

func ToAccountResponses(accounts []models.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, ToAccountResponse(a))
	}
	return out
}
