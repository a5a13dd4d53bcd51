package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/battle --output domain/battle --outpkg battlemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/battlestats --output domain/battlestats --outpkg battlestatsmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/progress --output domain/progress --outpkg progressmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Publisher --dir ../domain/event --output domain/event --outpkg eventmock --filename publisher_mock.go
