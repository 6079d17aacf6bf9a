package esphttp

// Method identifies an HTTP method. Only Get is ever emitted on the wire;
// the others are accepted by Request so callers can record intent, but
// transitionState silently formats a GET request regardless of Method.
type Method int

const (
	Get Method = iota
	Head
	Post
	Put
	Delete
	Connect
	Options
	Trace
	Patch
)

func (m Method) String() string {
	switch m {
	case Get:
		return "GET"
	case Head:
		return "HEAD"
	case Post:
		return "POST"
	case Put:
		return "PUT"
	case Delete:
		return "DELETE"
	case Connect:
		return "CONNECT"
	case Options:
		return "OPTIONS"
	case Trace:
		return "TRACE"
	case Patch:
		return "PATCH"
	default:
		return "GET"
	}
}

// Request describes an HTTP transaction for the driver to carry out.
type Request struct {
	// Domain is the server's hostname, without a scheme (e.g. "example.com").
	Domain string
	// Path is the resource path, e.g. "/" or "/search?q=esp8266". Defaults
	// to "/" if empty.
	Path string
	// Method records the caller's intended HTTP method. Only Get is ever
	// emitted on the wire; see Method.
	Method Method
	// SendData is carried for parity with the original driver's POST
	// support but is never written to the wire by the GET-only formatter.
	SendData []byte
	// Port is the server's TCP port, as a decimal string. Defaults to "80"
	// if empty.
	Port string
}

func (r *Request) path() string {
	if r.Path == "" {
		return "/"
	}
	return r.Path
}

func (r *Request) port() string {
	if r.Port == "" {
		return "80"
	}
	return r.Port
}
