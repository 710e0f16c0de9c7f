package mocks

//go:generate mockgen -destination=./mock_cache.go -package=mocks github.com/rxtech-lab/argo-analytics/internal/cache Cache
//go:generate mockgen -destination=./mock_window.go -package=mocks github.com/rxtech-lab/argo-analytics/internal/window Engine
//go:generate mockgen -destination=./mock_source.go -package=mocks github.com/rxtech-lab/argo-analytics/internal/ledger Source
