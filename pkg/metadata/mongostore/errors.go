package mongostore

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wsobjects/wsd/pkg/wsdomain"
)

func upstream(op string, err error) error {
	return &wsdomain.Error{Code: wsdomain.ErrUpstream, Message: op + ": " + err.Error()}
}

func translate(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return wsdomain.NotFound(path)
	}
	if mongo.IsDuplicateKeyError(err) {
		return wsdomain.AlreadyExists(path)
	}
	return upstream(op, err)
}
