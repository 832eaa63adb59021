package lobby_test

// fakeBroadcaster records every transport call the coordinator makes.
type fakeBroadcaster struct {
	subs     map[string]string // connection id -> room id
	messages []sentMessage
}

type sentMessage struct {
	kind    string // "send", "broadcast", "broadcastExcept"
	connID  string // unicast target or excluded sender
	roomID  string
	event   string
	payload interface{}
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{subs: make(map[string]string)}
}

func (b *fakeBroadcaster) Subscribe(connectionID, roomID string) {
	b.subs[connectionID] = roomID
}

func (b *fakeBroadcaster) Send(connectionID, event string, payload interface{}) {
	b.messages = append(b.messages, sentMessage{kind: "send", connID: connectionID, event: event, payload: payload})
}

func (b *fakeBroadcaster) Broadcast(roomID, event string, payload interface{}) {
	b.messages = append(b.messages, sentMessage{kind: "broadcast", roomID: roomID, event: event, payload: payload})
}

func (b *fakeBroadcaster) BroadcastExcept(roomID, exceptID, event string, payload interface{}) {
	b.messages = append(b.messages, sentMessage{kind: "broadcastExcept", roomID: roomID, connID: exceptID, event: event, payload: payload})
}

// byEvent returns all recorded messages with the given event name.
func (b *fakeBroadcaster) byEvent(event string) []sentMessage {
	var out []sentMessage
	for _, m := range b.messages {
		if m.event == event {
			out = append(out, m)
		}
	}
	return out
}

// sentTo returns all unicast messages delivered to a connection.
func (b *fakeBroadcaster) sentTo(connectionID string) []sentMessage {
	var out []sentMessage
	for _, m := range b.messages {
		if m.kind == "send" && m.connID == connectionID {
			out = append(out, m)
		}
	}
	return out
}

func (b *fakeBroadcaster) reset() {
	b.messages = nil
}
