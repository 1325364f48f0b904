package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/team --output domain/team --outpkg teammock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/ownership --output domain/ownership --outpkg ownershipmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name CacheRepository --dir ../domain/ranking --output domain/ranking --outpkg rankingmock --filename cache_repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Provider --dir ../domain/gamelog --output domain/gamelog --outpkg gamelogmock --filename provider_mock.go
