package models

// Product is a SWOT collection with the granule pattern usually used to narrow it.
type Product struct {
	ShortName string `json:"short_name" yaml:"short_name"`
	Pattern   string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Example   string `json:"example" yaml:"example"`
}

// Products lists the SWOT hydrology collections this tool is used with.
var Products = []Product{
	{
		ShortName: "SWOT_L1B_HR_SLC_2.0",
		Example:   "SWOT_L1B_HR_SLC_017_350_037R_20240701T125608_20240701T125616_PIC0_01.nc",
	},
	{
		ShortName: "SWOT_L2_HR_PIXC_2.0",
		Example:   "SWOT_L2_HR_PIXC_010_106_086R_20240128T183540_20240128T183551_PIC0_01.nc",
	},
	{
		ShortName: "SWOT_L2_HR_PIXCVec_2.0",
		Example:   "SWOT_L2_HR_PIXCVec_010_106_086R_20240128T183540_20240128T183551_PIC0_01.nc",
	},
	{
		ShortName: "SWOT_L2_HR_RiverSP_2.0",
		Pattern:   "*Node*_GR_*",
		Example:   "SWOT_L2_HR_RiverSP_Node_001_313_GR_20230801T095053_20230801T095102_PGC0_01.zip",
	},
	{
		ShortName: "SWOT_L2_HR_RiverSP_2.0",
		Pattern:   "*Reach*_GR_*",
		Example:   "SWOT_L2_HR_RiverSP_Reach_016_089_GR_20240601T090328_20240601T090336_PIC0_01.zip",
	},
	{
		ShortName: "SWOT_L2_HR_LakeSP_2.0",
		Pattern:   "*Prior*_GR_*",
		Example:   "SWOT_L2_HR_LakeSP_Prior_013_145_GR_20240401T184641_20240401T185132_PIC0_01.zip",
	},
	{
		ShortName: "SWOT_L2_HR_Raster_2.0",
		Pattern:   "*100m**563_138F*",
		Example:   "SWOT_L2_HR_Raster_250m_UTM23V_N_x_x_x_017_406_021F_20240703T125800_20240703T125808_PIC0_01.nc",
	},
}
