package views

type TransferRequest struct {
	FromAccountID int64 `json:"from_account_id" binding:"required"`
	ToAccountID   int64 `json:"to_account_id" binding:"required"`
	// Amount is validated by the transfer engine so that a zero or negative
	// value surfaces as InvalidAmount rather than a binding error.
	Amount float64 `json:"amount"`
}
