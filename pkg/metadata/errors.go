package metadata

import "github.com/wsobjects/wsd/pkg/wsdomain"

func notFound(path string) error {
	return wsdomain.NotFound(path)
}

func alreadyExists(path string) error {
	return wsdomain.AlreadyExists(path)
}

func permissionDenied(path string) error {
	return wsdomain.PermissionDenied(path)
}

func conflict(path, message string) error {
	return wsdomain.Conflict(path, message)
}

func invalidArgument(message string) error {
	return wsdomain.InvalidArgument(message)
}
