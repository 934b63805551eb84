package core

import "sync"

// EventContext carries the payload of a fired event. Only the fields relevant
// to the fired code are set.
type EventContext struct {
	// Cache key of the file the event refers to, if any.
	FileKey string
	// File type tag ("image", "tilemapJSON", ...), if any.
	FileType string
	// Name of the cache an entry was added to or removed from.
	CacheName string
	// Overall loader progress in [0,1].
	Progress float64
	// Bytes transferred for the file, if any.
	Bytes int64
	// The failure that put a file in an errored state, if any.
	Err error
}

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// A load batch started. FileKey unset.
	EVENT_CODE_LOAD_START SystemEventCode = 0x01

	// A single file finished its transfer and was processed and cached.
	/* Context usage:
	 * key = data.FileKey
	 * type = data.FileType
	 * bytes = data.Bytes
	 */
	EVENT_CODE_FILE_COMPLETE SystemEventCode = 0x02

	// A single file failed its transfer or its processing step.
	/* Context usage:
	 * key = data.FileKey
	 * err = data.Err
	 */
	EVENT_CODE_FILE_ERRORED SystemEventCode = 0x03

	// Overall progress changed.
	/* Context usage:
	 * progress = data.Progress
	 */
	EVENT_CODE_LOAD_PROGRESS SystemEventCode = 0x04

	// The whole batch finished, including failed files.
	EVENT_CODE_LOAD_COMPLETE SystemEventCode = 0x05

	// An entry was added to a cache.
	/* Context usage:
	 * key = data.FileKey
	 * cache = data.CacheName
	 */
	EVENT_CODE_CACHE_ADD SystemEventCode = 0x06

	// An entry was removed from a cache.
	EVENT_CODE_CACHE_REMOVE SystemEventCode = 0x07

	// A watched local asset changed on disk.
	/* Context usage:
	 * key = data.FileKey
	 */
	EVENT_CODE_ASSET_CHANGED SystemEventCode = 0x08

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

// This should be more than enough codes...
const MAX_MESSAGE_CODES = 16384

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

type eventCodeEntry struct {
	events []*registeredEvent
}

// State structure.
type eventSystemState struct {
	mutex sync.RWMutex
	// Lookup table for event codes.
	registered [MAX_MESSAGE_CODES]eventCodeEntry
}

/**
 * Event system internal state.
 */
var onceEvent sync.Once
var isInitialized bool = false
var eventState *eventSystemState = nil

// Should return true if handled.
type FnOnEvent func(code SystemEventCode, sender interface{}, listener_inst interface{}, data EventContext) bool

func EventInitialize() bool {
	if isInitialized {
		return false
	}
	isInitialized = false
	onceEvent.Do(func() {
		eventState = &eventSystemState{}
	})
	isInitialized = true
	return true
}

func EventShutdown() error {
	if !isInitialized {
		return nil
	}
	// Free the events arrays. Any objects pointed to should be destroyed on their own.
	eventState.mutex.Lock()
	defer eventState.mutex.Unlock()
	for i := 0; i < MAX_MESSAGE_CODES; i++ {
		if len(eventState.registered[i].events) != 0 {
			eventState.registered[i].events = nil
		}
	}
	return nil
}

/**
 * Register to listen for when events are sent with the provided code. Events with duplicate
 * listener/callback combos will not be registered again and will cause this to return FALSE.
 * @param code The event code to listen for.
 * @param listener A pointer to a listener instance. Can be 0/NULL.
 * @param on_event The callback function pointer to be invoked when the event code is fired.
 * @returns TRUE if the event is successfully registered; otherwise false.
 */
func EventRegister(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if !isInitialized {
		return false
	}
	eventState.mutex.Lock()
	defer eventState.mutex.Unlock()

	registeredCount := len(eventState.registered[code].events)
	for i := 0; i < registeredCount; i++ {
		if listener != nil && eventState.registered[code].events[i].listener == listener {
			LogWarn("event %d already has a registration for this listener", code)
			return false
		}
	}
	// If at this point, no duplicate was found. Proceed with registration.
	event := &registeredEvent{
		listener: listener,
		callback: onEvent,
	}
	eventState.registered[code].events = append(eventState.registered[code].events, event)
	return true
}

/**
 * Unregister from listening for when events are sent with the provided code. If no matching
 * registration is found, this function returns FALSE.
 * @param code The event code to stop listening for.
 * @param listener A pointer to a listener instance. Can be 0/NULL.
 * @param on_event The callback function pointer to be unregistered.
 * @returns TRUE if the event is successfully unregistered; otherwise false.
 */
func EventUnregister(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if !isInitialized {
		return false
	}
	eventState.mutex.Lock()
	defer eventState.mutex.Unlock()

	// On nothing is registered for the code, boot out.
	if len(eventState.registered[code].events) == 0 {
		return false
	}

	registeredCount := len(eventState.registered[code].events)
	for i := 0; i < registeredCount; i++ {
		e := eventState.registered[code].events[i]
		if e.listener == listener && e.callback != nil {
			// Found one, remove it. Build a fresh slice rather than splicing
			// in place: EventFire iterates a snapshot of this slice outside
			// the lock, so the old backing array must stay intact.
			remaining := make([]*registeredEvent, 0, registeredCount-1)
			remaining = append(remaining, eventState.registered[code].events[:i]...)
			remaining = append(remaining, eventState.registered[code].events[i+1:]...)
			eventState.registered[code].events = remaining
			return true
		}
	}
	// Not found.
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * TRUE, the event is considered handled and is not passed on to any more listeners.
 * @param code The event code to fire.
 * @param sender A pointer to the sender. Can be 0/NULL.
 * @param data The event data.
 * @returns TRUE if handled, otherwise FALSE.
 */
func EventFire(code SystemEventCode, sender interface{}, context EventContext) bool {
	if !isInitialized {
		return false
	}
	eventState.mutex.RLock()
	// Snapshot under the lock. Unregister swaps in a fresh slice, so this
	// snapshot stays valid while listeners come and go mid-fire.
	events := eventState.registered[code].events
	eventState.mutex.RUnlock()

	// If nothing is registered for the code, boot out.
	if len(events) == 0 {
		return false
	}
	for i := 0; i < len(events); i++ {
		e := events[i]
		if e.callback(code, sender, e.listener, context) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	// Not found.
	return false
}
