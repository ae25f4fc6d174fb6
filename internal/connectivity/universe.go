package connectivity

// CommandSet names the backend commands for one device universe.
// An empty name means the universe does not support that operation.
type CommandSet struct {
	List       string
	Connect    string
	Disconnect string
	Pair       string
	Forget     string
	ListPaired string
}

// TopicSet names the lifecycle event topics for one device universe.
// Topics use the canonical colon-separated form; the bus adapter owns
// any mapping to transport-specific hierarchies.
type TopicSet struct {
	ScanStarted   string
	ScanComplete  string
	ScanError     string
	Connected     string
	Disconnected  string
	ConnectFailed string
	Paired        string
	PairFailed    string
	Forgotten     string
	PairedList    string
}

// PayloadKeys names the operation-specific payload fields for one
// universe, so event consumers see the field names they expect
// ("instruments"/"instrumentId" versus "devices"/"device_id").
type PayloadKeys struct {
	List   string // key carrying the full device list
	ID     string // key carrying the affected identifier
	Record string // key carrying the affected record
}

// Universe configures one generic coordinator for a device category.
// Instruments and Bluetooth share all coordinator logic and differ only
// in this configuration.
type Universe struct {
	Name     string
	Kind     Kind
	Commands CommandSet
	Topics   TopicSet
	Payload  PayloadKeys
}

// SupportsPairing reports whether the universe has pair/forget commands.
func (u Universe) SupportsPairing() bool {
	return u.Commands.Pair != "" && u.Commands.ListPaired != ""
}

// Instruments returns the canonical instrument universe configuration.
func Instruments() Universe {
	return Universe{
		Name: "instruments",
		Kind: KindInstrument,
		Commands: CommandSet{
			List:       "list_devices",
			Connect:    "connect_device",
			Disconnect: "disconnect_device",
		},
		Topics: TopicSet{
			ScanStarted:   "instruments:scan:started",
			ScanComplete:  "instruments:scan:complete",
			ScanError:     "instruments:scan:error",
			Connected:     "instruments:connected",
			Disconnected:  "instruments:disconnected",
			ConnectFailed: "instruments:connect_failed",
		},
		Payload: PayloadKeys{
			List:   "instruments",
			ID:     "instrumentId",
			Record: "instrument",
		},
	}
}

// Bluetooth returns the canonical Bluetooth universe configuration.
func Bluetooth() Universe {
	return Universe{
		Name: "bluetooth",
		Kind: KindBluetoothAvailable,
		Commands: CommandSet{
			List:       "scan",
			Connect:    "connect",
			Disconnect: "disconnect",
			Pair:       "pair",
			Forget:     "forget",
			ListPaired: "paired_devices",
		},
		Topics: TopicSet{
			ScanStarted:   "bluetooth:scan:started",
			ScanComplete:  "bluetooth:scanned",
			ScanError:     "bluetooth:scan_failed",
			Connected:     "bluetooth:connected",
			Disconnected:  "bluetooth:disconnected",
			ConnectFailed: "bluetooth:connect_failed",
			Paired:        "bluetooth:paired",
			PairFailed:    "bluetooth:pair_failed",
			Forgotten:     "bluetooth:forgotten",
			PairedList:    "bluetooth:paired_list",
		},
		Payload: PayloadKeys{
			List:   "devices",
			ID:     "device_id",
			Record: "device",
		},
	}
}
