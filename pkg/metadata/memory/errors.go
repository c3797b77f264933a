package memory

import "github.com/wsobjects/wsd/pkg/wsdomain"

func notFound(owner, name string) error {
	return wsdomain.NotFound("/" + owner + "/" + name)
}

func notFoundID(id string) error {
	return wsdomain.NotFound(id)
}

func notFoundObj(path string) error {
	return wsdomain.NotFound(path)
}

func alreadyExists(owner, name string) error {
	return wsdomain.AlreadyExists("/" + owner + "/" + name)
}

func alreadyExistsObj(path string) error {
	return wsdomain.AlreadyExists(path)
}

func conflictNotEmpty(path string) error {
	return wsdomain.Conflict(path, "folder not empty")
}
