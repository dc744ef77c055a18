package entities

// Merge applies a partial update to an existing record and returns a new
// record; existing is left untouched.
//
// Event types named in the update are merged field by field: a provided
// Enabled overwrites, a provided channel list replaces the old list outright.
// Event types absent from the update are carried over. DndWindows is
// all-or-nothing: replaced when the update carries it, kept otherwise.
func Merge(existing *PreferencesRecord, update *PreferencesUpdate) *PreferencesRecord {
	merged := existing.Clone()
	if merged == nil {
		merged = &PreferencesRecord{}
	}
	merged.Normalize()

	if update == nil {
		return merged
	}

	for eventType, change := range update.Preferences {
		pref := merged.Preferences[eventType]
		if change.Enabled != nil {
			pref.Enabled = *change.Enabled
		}
		if change.ChannelsSet || change.Channels != nil {
			pref.Channels = cloneChannels(change.Channels)
		}
		if pref.Channels == nil {
			pref.Channels = []Channel{}
		}
		merged.Preferences[eventType] = pref
	}

	if update.DndWindows != nil {
		merged.DndWindows = append([]DndWindow{}, (*update.DndWindows)...)
	}

	return merged
}
