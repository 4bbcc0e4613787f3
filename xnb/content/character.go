package content

// CharacterTemplate is a game character definition. Its fields are not
// decoded, the rest of the stream is kept as is.
type CharacterTemplate struct {
	Raw []byte `json:"-"`
}

func (*CharacterTemplate) isContent() {}

func readCharacterTemplate(r *Reader) (Content, error) {
	raw, err := r.ReadBytes(r.Remaining())
	if err != nil {
		return nil, err
	}
	return &CharacterTemplate{Raw: raw}, nil
}
