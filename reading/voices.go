package reading

import "golang.org/x/text/language"

// ChooseVoice picks the best voice for the wanted language tag. Voices with
// unparseable language tags are skipped. The first voice wins when nothing
// matches, and the zero Voice is returned only for an empty list.
func ChooseVoice(voices []Voice, want language.Tag) Voice {
	if len(voices) == 0 {
		return Voice{}
	}

	tags := make([]language.Tag, 0, len(voices))
	index := make([]int, 0, len(voices))
	for i, v := range voices {
		tag, err := language.Parse(v.Language)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		index = append(index, i)
	}
	if len(tags) == 0 {
		return voices[0]
	}

	matcher := language.NewMatcher(tags)
	_, i, conf := matcher.Match(want)
	if conf == language.No {
		return voices[0]
	}
	return voices[index[i]]
}

// FindVoice looks a voice up by ID.
func FindVoice(voices []Voice, id string) (Voice, error) {
	for _, v := range voices {
		if v.ID == id {
			return v, nil
		}
	}
	return Voice{}, ErrVoiceNotFound
}
