package core

// Indicator is one named public-health figure shown on the dashboard.
type Indicator struct {
	Nome      string `json:"nome"`
	Valor     string `json:"valor"`
	Descricao string `json:"descricao"`
	Fonte     string `json:"fonte"`
	Link      string `json:"link,omitempty"`
}

// Indicadores de saúde de Minas Gerais (dados públicos)
// Fonte: DATASUS e Secretaria de Saúde de MG
var indicatorsMG = []Indicator{
	{
		Nome:      "Cobertura Vacinal",
		Valor:     "89.2%",
		Descricao: "Taxa de cobertura vacinal infantil em MG",
		Fonte:     "DATASUS/PNI",
		Link:      "https://datasus.saude.gov.br/",
	},
	{
		Nome:      "Leitos UTI",
		Valor:     "4.521",
		Descricao: "Leitos de UTI disponíveis no estado",
		Fonte:     "CNES/DATASUS",
		Link:      "https://cnes.datasus.gov.br/",
	},
	{
		Nome:      "UBS em MG",
		Valor:     "5.847",
		Descricao: "Unidades Básicas de Saúde ativas",
		Fonte:     "CNES/DATASUS",
		Link:      "https://cnes.datasus.gov.br/",
	},
	{
		Nome:      "Médicos/1000 hab",
		Valor:     "2.4",
		Descricao: "Proporção de médicos por mil habitantes",
		Fonte:     "CFM/DATASUS",
		Link:      "https://datasus.saude.gov.br/",
	},
	{
		Nome:      "ESF Cobertura",
		Valor:     "78.5%",
		Descricao: "Cobertura da Estratégia Saúde da Família",
		Fonte:     "e-Gestor AB",
		Link:      "https://egestorab.saude.gov.br/",
	},
}

// Indicadores específicos de Juiz de Fora
var indicatorsJF = []Indicator{
	{
		Nome:      "UPAs JF",
		Valor:     "6",
		Descricao: "Unidades de Pronto Atendimento em JF",
		Fonte:     "PJF/Saúde",
		Link:      "https://www.pjf.mg.gov.br/",
	},
	{
		Nome:      "Hospitais SUS",
		Valor:     "12",
		Descricao: "Hospitais com atendimento SUS em JF",
		Fonte:     "CNES/DATASUS",
		Link:      "https://cnes.datasus.gov.br/",
	},
	{
		Nome:      "População",
		Valor:     "577.532",
		Descricao: "População estimada de Juiz de Fora",
		Fonte:     "IBGE 2024",
		Link:      "https://www.ibge.gov.br/",
	},
}

// IndicatorsByRegion returns the indicator set for "jf" or "mg".
// Unrecognized regions fall back to the Minas Gerais dataset.
func IndicatorsByRegion(regiao string) (string, []Indicator) {
	if regiao == "jf" {
		return "Juiz de Fora", indicatorsJF
	}
	return "Minas Gerais", indicatorsMG
}
