package mocks

//go:generate mockgen -destination=caller.go -package=mocks github.com/Steem-Tools/steemgo/rpc Caller
