package imap

// CommandType discriminates Request variants for metrics, dispatch, and the
// session's post-completion bookkeeping (capability refresh, state
// transitions). See spec §4.A.
type CommandType int

const (
	CommandTypeUnknown CommandType = iota
	CommandTypeCapability
	CommandTypeLogin
	CommandTypeLogout
	CommandTypeNoop
	CommandTypeSelect
	CommandTypeExamine
	CommandTypeList
	CommandTypeSubscribe
	CommandTypeUnsubscribe
	CommandTypeNamespace
	CommandTypeStatus
	CommandTypeSearch
	CommandTypeCompress
	CommandTypeStartTLS
	CommandTypeAuthenticatePlain
	CommandTypeAuthenticateXOAuth2
	CommandTypeAuthenticateOAuthBearer
	CommandTypeIdle
)

// String implements fmt.Stringer.
func (t CommandType) String() string {
	switch t {
	case CommandTypeCapability:
		return "CAPABILITY"
	case CommandTypeLogin:
		return "LOGIN"
	case CommandTypeLogout:
		return "LOGOUT"
	case CommandTypeNoop:
		return "NOOP"
	case CommandTypeSelect:
		return "SELECT"
	case CommandTypeExamine:
		return "EXAMINE"
	case CommandTypeList:
		return "LIST"
	case CommandTypeSubscribe:
		return "SUBSCRIBE"
	case CommandTypeUnsubscribe:
		return "UNSUBSCRIBE"
	case CommandTypeNamespace:
		return "NAMESPACE"
	case CommandTypeStatus:
		return "STATUS"
	case CommandTypeSearch:
		return "SEARCH"
	case CommandTypeCompress:
		return "COMPRESS"
	case CommandTypeStartTLS:
		return "STARTTLS"
	case CommandTypeAuthenticatePlain:
		return "AUTHENTICATE PLAIN"
	case CommandTypeAuthenticateXOAuth2:
		return "AUTHENTICATE XOAUTH2"
	case CommandTypeAuthenticateOAuthBearer:
		return "AUTHENTICATE OAUTHBEARER"
	case CommandTypeIdle:
		return "IDLE"
	default:
		return "UNKNOWN"
	}
}
