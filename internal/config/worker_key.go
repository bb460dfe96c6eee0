package config

type WorkerKeyStruct struct {
	PersistRekapQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistRekapQueue: "tagihan:persist_rekap_queue",
}
