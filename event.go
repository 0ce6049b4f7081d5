package questsh

// Event describes one executed pipeline stage.
type Event struct {
	RunID     string // shared by all stages of a pipeline run
	Stage     int
	Command   string
	Args      []string
	Succeeded bool
	Kind      ErrorKind
}

// Subscriber receives events after each pipeline run. Events are copies;
// subscribers can only affect the session by issuing further commands.
type Subscriber interface {
	Notify(ev Event)
}

// SubscriberFunc adapts a plain function to Subscriber.
type SubscriberFunc func(ev Event)

func (f SubscriberFunc) Notify(ev Event) { f(ev) }
