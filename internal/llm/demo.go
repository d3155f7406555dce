package llm

// demoReply is served by the "mock" provider so the service can run without
// credentials.
const demoReply = `[
  {"q": "What is the usable capacity of the main fuel tank?", "options": ["1,200 lb", "2,400 lb", "3,600 lb", "4,800 lb"], "answer": "B", "explain": "The main tank holds 2,400 lb usable (p.14).", "topic": "fuel-capacity", "page": 14},
  {"q": "Which radio call reports reaching minimum fuel for return?", "options": ["BINGO", "JOKER", "WINCHESTER", "TALLY"], "answer": "A", "explain": "BINGO is the return fuel state (p.22).", "topic": "fuel-states", "page": 22},
  {"q": "What flap setting is required for a carrier landing?", "options": ["Up", "Half", "Full", "Auto"], "answer": "C", "explain": "Full flaps are set on final (p.31).", "topic": "landing-configuration", "page": 31},
  {"q": "How long must the engine idle before the cold start checklist continues?", "options": ["10 seconds", "30 seconds", "60 seconds", "2 minutes"], "answer": "C", "explain": "Idle for 60 seconds after light-off (p.8).", "topic": "engine-startup", "page": 8},
  {"q": "Which display page shows the hydraulic pressures?", "options": ["HSI", "SMS", "FCS", "ENG"], "answer": "D", "explain": "Hydraulic pressures are on the ENG page (p.40).", "topic": "hydraulic-display", "page": 40},
  {"q": "What does the master caution light indicate?", "options": ["Gear unsafe", "A caution message is active", "Fire in the left engine", "Autopilot engaged"], "answer": "B", "explain": "It flags any new caution message (p.45).", "topic": "master-caution", "page": 45},
  {"q": "At what speed is the landing gear limited?", "options": ["200 knots", "250 knots", "300 knots", "350 knots"], "answer": "B", "explain": "Gear limit speed is 250 knots (p.12).", "topic": "gear-limits", "page": 12},
  {"q": "Which switch arms the ejection seat?", "options": ["Seat safe handle", "Master arm", "Canopy jettison", "Battery"], "answer": "A", "explain": "Raise the seat safe handle to arm (p.5).", "topic": "ejection-seat", "page": 5},
  {"q": "What is the tanker rendezvous altitude block?", "options": ["FL150-FL170", "FL200-FL220", "FL250-FL270", "FL300-FL320"], "answer": "B", "explain": "Tankers orbit between FL200 and FL220 (p.52).", "topic": "tanker-rendezvous", "page": 52},
  {"q": "Which mode is used for air-to-ground gun strafing?", "options": ["CCIP", "AUTO", "MAN", "DTOS"], "answer": "A", "explain": "Guns use CCIP symbology (p.60).", "topic": "gun-strafing", "page": 60}
]`

// NewDemoProvider returns a MockProvider that always replies with a fixed
// ten question quiz.
func NewDemoProvider() *MockProvider {
	m := NewMockProvider(MockResponse{Text: demoReply})
	m.Repeat = true
	return m
}
