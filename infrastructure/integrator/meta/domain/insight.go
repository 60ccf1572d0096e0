package metadomain

// Action é uma entrada de "actions" ou "action_values" do relatório
type Action struct {
	ActionType     string `json:"action_type"`
	ActionTargetID Loose  `json:"action_target_id,omitempty"`
	Value          Loose  `json:"value"`
}

// RawInsight é o registro do endpoint /insights como a API devolve
type RawInsight struct {
	AdID         string `json:"ad_id,omitempty"`
	AdName       string `json:"ad_name,omitempty"`
	AdSetID      string `json:"adset_id,omitempty"`
	AdSetName    string `json:"adset_name,omitempty"`
	CampaignID   string `json:"campaign_id,omitempty"`
	CampaignName string `json:"campaign_name,omitempty"`
	DateStart    string `json:"date_start"`
	DateStop     string `json:"date_stop"`

	Impressions Loose `json:"impressions"`
	Reach       Loose `json:"reach"`
	Clicks      Loose `json:"clicks"`
	Spend       Loose `json:"spend"`
	CTR         Loose `json:"ctr"`

	Actions      []Action `json:"actions,omitempty"`
	ActionValues []Action `json:"action_values,omitempty"`

	AdCreative *Creative `json:"ad_creative,omitempty"`
}

type Cursors struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

type Paging struct {
	Cursors Cursors `json:"cursors"`
	Next    string  `json:"next,omitempty"`
}

// InsightsPage é uma página de resultados do endpoint /insights
type InsightsPage struct {
	Data   []RawInsight `json:"data"`
	Paging *Paging      `json:"paging,omitempty"`
}

// NextURL retorna a URL absoluta da próxima página, vazia quando acabou
func (p *InsightsPage) NextURL() string {
	if p.Paging == nil {
		return ""
	}
	return p.Paging.Next
}
