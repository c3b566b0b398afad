package domain

// Close codes sent by the server when it ends a connection.
const (
	CloseNormalClosure = 1000
	CloseGoingAway     = 1001
	CloseInternalError = 1011
)
