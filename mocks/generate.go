package mocks

//go:generate mockgen -destination=./mock_notifier.go -package=mocks github.com/rxtech-lab/tradewatch/internal/alerts Notifier
