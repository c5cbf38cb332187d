package domain

// QuotaState is a snapshot of the free-tier counter for one installation.
type QuotaState struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

// Remaining never goes negative even if the stored counter overran the limit.
func (q QuotaState) Remaining() int {
	if q.Used >= q.Limit {
		return 0
	}
	return q.Limit - q.Used
}
