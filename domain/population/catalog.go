package population

// Program ids of the known social programs
const (
	ProgramIMSSBienestar             = "imss_bienestar"
	ProgramPensionAdultosMayores     = "pension_adultos_mayores"
	ProgramPensionMujeresBienestar   = "pension_mujeres_bienestar"
	ProgramBecaBenitoJuarez          = "beca_benito_juarez"
	ProgramBecaRitaCetina            = "beca_rita_cetina"
	ProgramJovenesEscribiendoFuturo  = "jovenes_escribiendo_el_futuro"
	ProgramJovenesConstruyendoFuturo = "jovenes_construyendo_futuro"
	ProgramDesdeLaCuna               = "desde_la_cuna"
	ProgramMiBecaParaEmpezar         = "mi_beca_para_empezar"
	ProgramSeguroDesempleoCDMX       = "seguro_desempleo_cdmx"
	ProgramIngresoCiudadanoUniversal = "ingreso_ciudadano_universal"
	ProgramINEA                      = "inea"
	ProgramLecheBienestar            = "leche_bienestar"
)

// KnownPrograms is the external program catalog in its canonical order
var KnownPrograms = []string{
	ProgramIMSSBienestar,
	ProgramPensionAdultosMayores,
	ProgramPensionMujeresBienestar,
	ProgramBecaBenitoJuarez,
	ProgramBecaRitaCetina,
	ProgramJovenesEscribiendoFuturo,
	ProgramJovenesConstruyendoFuturo,
	ProgramDesdeLaCuna,
	ProgramMiBecaParaEmpezar,
	ProgramSeguroDesempleoCDMX,
	ProgramIngresoCiudadanoUniversal,
	ProgramINEA,
	ProgramLecheBienestar,
}

var displayNames = map[string]string{
	ProgramIMSSBienestar:             "IMSS Bienestar",
	ProgramPensionAdultosMayores:     "Pensión Adultos Mayores",
	ProgramPensionMujeresBienestar:   "Pensión Mujeres Bienestar",
	ProgramBecaBenitoJuarez:          "Beca Benito Juárez",
	ProgramBecaRitaCetina:            "Beca Rita Cetina",
	ProgramJovenesEscribiendoFuturo:  "Jóvenes Escribiendo el Futuro",
	ProgramJovenesConstruyendoFuturo: "Jóvenes Construyendo el Futuro",
	ProgramDesdeLaCuna:               "Desde la Cuna",
	ProgramMiBecaParaEmpezar:         "Mi Beca para Empezar",
	ProgramSeguroDesempleoCDMX:       "Seguro de Desempleo CDMX",
	ProgramIngresoCiudadanoUniversal: "Ingreso Ciudadano Universal",
	ProgramINEA:                      "INEA",
	ProgramLecheBienestar:            "Leche Bienestar",
}

// DisplayName returns the human-readable program name, or the id itself for
// programs outside the known catalog.
func DisplayName(program string) string {
	if name, ok := displayNames[program]; ok {
		return name
	}
	return program
}

// deprivationPrograms maps each deprivation to the programs that address it
var deprivationPrograms = map[Deprivation][]string{
	DeprivationHealth: {
		ProgramIMSSBienestar,
		ProgramSeguroDesempleoCDMX,
		ProgramPensionAdultosMayores,
	},
	DeprivationEducation: {
		ProgramMiBecaParaEmpezar,
		ProgramBecaRitaCetina,
		ProgramBecaBenitoJuarez,
		ProgramJovenesEscribiendoFuturo,
		ProgramINEA,
		ProgramDesdeLaCuna,
	},
	DeprivationSocialSecurity: {
		ProgramPensionAdultosMayores,
		ProgramPensionMujeresBienestar,
		ProgramIngresoCiudadanoUniversal,
		ProgramSeguroDesempleoCDMX,
		ProgramIMSSBienestar,
	},
}

// ProgramsFor returns a copy of the programs related to a deprivation
func ProgramsFor(d Deprivation) []string {
	programs := deprivationPrograms[d]
	out := make([]string, len(programs))
	copy(out, programs)
	return out
}
