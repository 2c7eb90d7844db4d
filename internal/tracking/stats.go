package tracking

// Counts holds per-status event counts.
type Counts struct {
	Sent    int `json:"sent"`
	Opened  int `json:"opened"`
	Clicked int `json:"clicked"`
}

func (c *Counts) add(s Status) {
	switch s {
	case StatusSent:
		c.Sent++
	case StatusOpened:
		c.Opened++
	case StatusClicked:
		c.Clicked++
	}
}

// Rates are opened/sent and clicked/sent. Raw rates exceed 1 when messages
// are opened or clicked more than once.
type Rates struct {
	OpenRate  float64 `json:"open_rate"`
	ClickRate float64 `json:"click_rate"`
}

func (c Counts) rates() Rates {
	if c.Sent == 0 {
		return Rates{}
	}
	return Rates{
		OpenRate:  float64(c.Opened) / float64(c.Sent),
		ClickRate: float64(c.Clicked) / float64(c.Sent),
	}
}

// Stats summarizes tracking records.
//
// The Total* fields and ByType count rows: three opens of one email count
// as three. Unique and UniqueByType count distinct tracking ids per status
// and are reported alongside, never instead.
type Stats struct {
	TotalSent    int                  `json:"total_sent"`
	TotalOpened  int                  `json:"total_opened"`
	TotalClicked int                  `json:"total_clicked"`
	ByType       map[EmailType]Counts `json:"by_type"`
	Rates        Rates                `json:"rates"`

	Unique       Counts               `json:"unique"`
	UniqueByType map[EmailType]Counts `json:"unique_by_type"`
	UniqueRates  Rates                `json:"unique_rates"`

	Recent []Record `json:"recent,omitempty"`
}

// Aggregate reduces records to Stats. Every known email type appears in the
// per-type maps, with zero counts when it has no records.
func Aggregate(records []Record) Stats {
	st := Stats{
		ByType:       make(map[EmailType]Counts, len(EmailTypes)),
		UniqueByType: make(map[EmailType]Counts, len(EmailTypes)),
	}
	for _, t := range EmailTypes {
		st.ByType[t] = Counts{}
		st.UniqueByType[t] = Counts{}
	}

	var total Counts
	type key struct {
		id     string
		status Status
	}
	seen := make(map[key]struct{}, len(records))

	for _, rec := range records {
		total.add(rec.Status)

		c := st.ByType[rec.EmailType]
		c.add(rec.Status)
		st.ByType[rec.EmailType] = c

		k := key{rec.TrackingID, rec.Status}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		st.Unique.add(rec.Status)
		u := st.UniqueByType[rec.EmailType]
		u.add(rec.Status)
		st.UniqueByType[rec.EmailType] = u
	}

	st.TotalSent = total.Sent
	st.TotalOpened = total.Opened
	st.TotalClicked = total.Clicked
	st.Rates = total.rates()
	st.UniqueRates = st.Unique.rates()
	return st
}
