package app

import (
	"errors"

	"github.com/ordernotify/golang_services/internal/notification_service/provider"
)

var errEmptyProviderResponse = errors.New("sms provider returned no response")

// sendError folds a transport error and an unsuccessful response into one error.
func sendError(resp *provider.SendResponseDetails, err error) error {
	if err != nil {
		return err
	}
	if resp == nil {
		return errEmptyProviderResponse
	}
	if !resp.IsSuccess {
		if resp.ErrorMessage != "" {
			return errors.New(resp.ErrorMessage)
		}
		return errors.New("sms provider rejected message with status " + resp.ProviderStatus)
	}
	return nil
}
