// Package redisserver serves the token operations over the Redis
// serialization protocol (RESP2), so any Redis client can mint and check
// tokens without an HTTP stack.
//
// Commands:
//
//	PING [message]
//	ECHO message
//	AUTH [username] password
//	QUIT
//	COMMAND ...                     always an empty array
//	TM.MINT user_id [capability]    bulk token
//	TM.VALIDATE token               [sub, jti, aud] or an error reply
//	TM.REVOKE token                 seconds until the entry lapses, -1 if never
//	TM.INSPECT token                [sub, jti, aud], unverified
//
// Domain failures are returned as "ERR <code> <message>" so clients can
// match on the TM-* code.
package redisserver
