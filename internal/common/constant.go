package common

// AuthorizationHeaderName carries the caller identity token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the authorization header value.
const BearerPrefix = "Bearer "
