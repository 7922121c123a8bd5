package domains

// AddDomainRequest is the body of POST /domains
type AddDomainRequest struct {
	Name       string `json:"name" binding:"required"`
	InstallSSL bool   `json:"installSsl"`
}

// InstallSSLRequest is the optional body of POST /domains/:name/ssl
type InstallSSLRequest struct {
	Force bool `json:"forceRenewal"`
}

// ListResponse wraps a domain listing
type ListResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
}
