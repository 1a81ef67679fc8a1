package constants

import "time"

// MembershipKeyPrefix prefixes the per-member chat set key in Redis.
const MembershipKeyPrefix = "chats_"

var CallbackData = struct {
	Confirm string
	Cancel  string
}{
	Confirm: "apply_buff",
	Cancel:  "delete_request",
}

var Texts = struct {
	StartCommand string
	TurnLabel    string
	ConfirmLabel string
	CancelLabel  string
	Greeting     string
	Prompt       string
	Welcome      string
	Farewell     string
	Ack          string
}{
	StartCommand: "/start",
	TurnLabel:    "My turn",
	ConfirmLabel: "Yes",
	CancelLabel:  "No",
	Greeting:     "Hi!",
	Prompt:       "Is it your turn already?",
	Welcome:      "Welcome to the group, %s!",
	Farewell:     "Bye!",
	Ack:          "Good luck!",
}

var RedisConfig = struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxRetries   int
	PoolSize     int
	PingTimeout  time.Duration
	ScanCount    int64
}{
	DialTimeout:  5 * time.Second,
	ReadTimeout:  3 * time.Second,
	WriteTimeout: 3 * time.Second,
	MaxRetries:   3,
	PoolSize:     4,
	PingTimeout:  5 * time.Second,
	ScanCount:    100,
}

var BreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,                // 3 consecutive failures open the circuit
	ResetTimeout:        30 * time.Second, // fail fast this long before probing
	HealthCheckInterval: 10 * time.Second,
	HealthCheckTimeout:  2 * time.Second,
}

var OutboxConfig = struct {
	Workers     int
	BufferSize  int
	SendTimeout time.Duration
}{
	Workers:     4,
	BufferSize:  256,
	SendTimeout: 15 * time.Second,
}

var LoopConfig = struct {
	EventTimeout    time.Duration
	PollTimeout     int
	ShutdownTimeout time.Duration
}{
	EventTimeout:    10 * time.Second,
	PollTimeout:     60, // seconds, passed to getUpdates
	ShutdownTimeout: 10 * time.Second,
}
