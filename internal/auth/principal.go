package auth

import "go.mongodb.org/mongo-driver/bson/primitive"

// Principal identifies the authenticated caller. Handlers receive it from
// the auth middleware and pass it explicitly into the service layer.
type Principal struct {
	UserID primitive.ObjectID
}
