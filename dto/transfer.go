package dto

// TransferRequest ... Request shape for the external transfer platform
type TransferRequest struct {
	SourceAccountID  int64  `json:"accountId"`
	ContactType      string `json:"contactType"`
	TargetIdentifier string `json:"targetIdentifier"`
	Amount           string `json:"amount"`
	Source           string `json:"source"`
	Force            bool   `json:"isForced"`
	Remarks          string `json:"remarks,omitempty"`
	Auto2FA          bool   `json:"auto2FA"`
}

// TransferResponse ... Result of one fund movement on the external platform
type TransferResponse struct {
	Success    bool   `json:"success"`
	TransferID string `json:"transferId,omitempty"`
	Message    string `json:"message,omitempty"`
}

// AuthTokenRequest ... Service token request for the transfer platform
type AuthTokenRequest struct {
	ServiceID  string `json:"serviceId"`
	ServiceKey string `json:"serviceKey"`
}

// AuthTokenResponse ...
type AuthTokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// ExternalServicesRequestErr ... Error shape returned by the transfer platform
type ExternalServicesRequestErr struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
