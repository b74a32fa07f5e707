package core

import "errors"

var ErrPageNotFound = errors.New("site: page not found")

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrPageNotFound)
}
