package esphttp

// Phase is a state of the transaction state machine. Values are ordered the
// way they are reached during a normal association + request lifecycle, so
// Connected can be implemented as a simple >= comparison against
// ConnectedToAp.
type Phase int

const (
	Reset Phase = iota
	DisableEcho
	ConfigureAsHttpClient
	AttemptingApConnection
	ConnectedToAp
	ConnectingToServer
	PreparingRequest
	SendingRequest
	GetFirstPacketLength
	ReadingFirstPacket
	ParsingHeader
	GetPacketLength
	ReadPacketIntoResponse
	GetNextPacket
	CloseConnection
	CloseConnectionFailure
	Complete
	Failure
)

var phaseNames = [...]string{
	Reset:                  "Reset",
	DisableEcho:            "DisableEcho",
	ConfigureAsHttpClient:  "ConfigureAsHttpClient",
	AttemptingApConnection: "AttemptingApConnection",
	ConnectedToAp:          "ConnectedToAp",
	ConnectingToServer:     "ConnectingToServer",
	PreparingRequest:       "PreparingRequest",
	SendingRequest:         "SendingRequest",
	GetFirstPacketLength:   "GetFirstPacketLength",
	ReadingFirstPacket:     "ReadingFirstPacket",
	ParsingHeader:          "ParsingHeader",
	GetPacketLength:        "GetPacketLength",
	ReadPacketIntoResponse: "ReadPacketIntoResponse",
	GetNextPacket:          "GetNextPacket",
	CloseConnection:        "CloseConnection",
	CloseConnectionFailure: "CloseConnectionFailure",
	Complete:               "Complete",
	Failure:                "Failure",
}

func (p Phase) String() string {
	if int(p) < 0 || int(p) >= len(phaseNames) {
		return "Phase(?)"
	}
	return phaseNames[p]
}

// readSubMode identifies which reader, if any, currently owns the serial
// byte stream. modeNone is the zero value: a freshly constructed Driver, or
// one sitting in a sticky terminal phase, has no active reader.
type readSubMode int

const (
	modeNone readSubMode = iota
	modeSequence
	modeInteger
	modeBuffer
)
