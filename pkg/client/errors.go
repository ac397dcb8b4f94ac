package client

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthorizationRequired : pas de session, ou le serveur a répondu 401
	ErrAuthorizationRequired = errors.New("autorisation requise")

	ErrAddFailed    = errors.New("ajout au panier impossible")
	ErrUpdateFailed = errors.New("mise à jour de la quantité impossible")
	ErrRemoveFailed = errors.New("suppression de l'article impossible")
)

// RequestError est une réponse non-2xx autre que 401
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("requête refusée (%d) : %s", e.Status, e.Message)
}

// mutationError garde l'erreur d'authentification telle quelle et range le reste sous kind
func mutationError(kind, err error) error {
	if errors.Is(err, ErrAuthorizationRequired) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
