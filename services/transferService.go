package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"infini-manager/config"
	"infini-manager/dto"
	"infini-manager/utility/apiClient"
	"infini-manager/utility/cache"
	"infini-manager/utility/logger"
)

// TransferExecutor ... External capability that performs one fund movement and reports success or failure
type TransferExecutor interface {
	Transfer(request dto.TransferRequest) (dto.TransferResponse, error)
}

// TransferService ... TransferExecutor implementation backed by the external transfer platform
type TransferService struct {
	Cache  *cache.Memory
	Config config.Data
}

func NewTransferService(authCache *cache.Memory, config config.Data) *TransferService {
	baseService := TransferService{
		Cache:  authCache,
		Config: config,
	}
	return &baseService
}

// Transfer ... Calls the transfer platform to move funds between a source account and a target identifier.
// A rejection from the platform is reported through the response, not as an error.
func (service *TransferService) Transfer(request dto.TransferRequest) (dto.TransferResponse, error) {

	authToken, err := service.getAuthToken()
	if err != nil {
		return dto.TransferResponse{}, err
	}

	httpClient := &http.Client{Timeout: time.Duration(service.Config.RequestTimeout) * time.Second}
	APIClient := apiClient.New(httpClient, fmt.Sprintf("%s/transfers", service.Config.TransferService))
	APIRequest, err := APIClient.NewRequest(http.MethodPost, "", request)
	if err != nil {
		return dto.TransferResponse{}, err
	}
	APIClient.AddHeader(APIRequest, map[string]string{
		"x-auth-token": authToken,
	})

	responseData := dto.TransferResponse{}
	if _, err := APIClient.Do(APIRequest, &responseData); err != nil {
		serviceErr := dto.ExternalServicesRequestErr{}
		if errUnmarshal := json.Unmarshal([]byte(err.Error()), &serviceErr); errUnmarshal == nil && serviceErr.Message != "" {
			return dto.TransferResponse{Success: false, Message: serviceErr.Message}, nil
		}
		return dto.TransferResponse{}, err
	}

	return responseData, nil
}

func (service *TransferService) getAuthToken() (string, error) {

	cachedResult := service.Cache.Get("serviceAuth")
	if cachedResult != nil {
		authTokenResponse := cachedResult.(*dto.AuthTokenResponse)
		if authTokenResponse.Token != "" {
			return authTokenResponse.Token, nil
		}
	}

	requestData := dto.AuthTokenRequest{
		ServiceID:  service.Config.ServiceID,
		ServiceKey: service.Config.ServiceKey,
	}
	authToken := dto.AuthTokenResponse{}

	APIClient := apiClient.New(nil, fmt.Sprintf("%s/auth/token", service.Config.TransferService))
	APIRequest, err := APIClient.NewRequest(http.MethodPost, "", requestData)
	if err != nil {
		return "", err
	}
	if _, err := APIClient.Do(APIRequest, &authToken); err != nil {
		logger.Error("Service auth token could not be retrieved, error : %s", err)
		return "", err
	}

	service.Cache.Set("serviceAuth", &authToken, true)
	return authToken.Token, nil
}
