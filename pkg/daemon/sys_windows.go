package daemon

func setUmaskForDaemon() {}
