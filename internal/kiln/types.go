package kiln

// NetworkStats 是单条链的统计结果，Chain 由请求地址推导。
type NetworkStats struct {
	Chain string    `json:"chain"`
	Data  StatsData `json:"data"`
}

// StatsData 是 Kiln network-stats 响应中展示所需的字段。
type StatsData struct {
	NbValidators    float64 `json:"nb_validators"`
	NetworkGrossAPY float64 `json:"network_gross_apy"`
}

// statsEnvelope 用于在边界处校验响应结构。
type statsEnvelope struct {
	Data *struct {
		NbValidators    *float64 `json:"nb_validators"`
		NetworkGrossAPY *float64 `json:"network_gross_apy"`
	} `json:"data"`
}
