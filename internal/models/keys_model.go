package models

// ApiKeys maps a platform to the secret used to post there. Not every platform needs an entry.
type ApiKeys map[Platform]string

// Clean drops unknown platforms and empty secrets.
func (k ApiKeys) Clean() ApiKeys {
	out := make(ApiKeys, len(k))
	for p, secret := range k {
		if !p.IsValid() || secret == "" {
			continue
		}
		out[p] = secret
	}
	return out
}
