package common

// AuthorizationHeaderName is the gRPC metadata key used to carry the
// session token on outbound requests. Keys are lowercase on the wire.
const AuthorizationHeaderName = "authorization"

// BearerScheme prefixes the token inside the authorization header value.
const BearerScheme = "Bearer "
