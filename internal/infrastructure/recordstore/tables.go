package recordstore

// Table names in the production document.
const (
	TableBatchMaster    = "ProductBatchMaster"
	TableBatchMS        = "ProductBatchMS"
	TableBatchCNC       = "ProductBatchCNC"
	TableBatchStore     = "ProductBatchStore"
	TableStatusHistory  = "BatchStatusHistory"
	TableModelConfig    = "ProductModelConfig"
	TablePartMSList     = "ProductPartMSList"
	TableStageMapping   = "ProcessStageMapping"
	TableProductionConf = "ProductionConfig"
)
