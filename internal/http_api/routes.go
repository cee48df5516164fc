package http_api

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	v1 := s.router.Group("/api/v1")

	v1.GET("/session", s.getSession)
	v1.POST("/connect", s.connect)
	v1.POST("/disconnect", s.disconnect)

	v1.GET("/networks", s.getNetworks)
	v1.POST("/network/switch", s.switchNetwork)

	v1.GET("/services", s.getServices)
	v1.POST("/services", s.createService)
	v1.GET("/services/:contract/status", s.getSubscriptionStatus)
	v1.POST("/services/:contract/purchase", s.purchase)

	v1.GET("/listings", s.getListings)
	v1.POST("/listings", s.listForSale)
	v1.POST("/listings/:id/buy", s.buyListing)
	v1.POST("/listings/:id/cancel", s.cancelListing)

	v1.GET("/holdings", s.getHoldings)
	v1.GET("/balance", s.getBalance)
	v1.POST("/faucet", s.requestFaucet)

	v1.GET("/busy", s.getBusy)
	v1.POST("/transfers", s.recordTransfer)
	v1.GET("/history", s.getHistory)
	v1.GET("/diagnostics", s.getDiagnostics)
}
