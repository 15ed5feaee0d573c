package main

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/craftwood/storefront/internal/catalog"
	"github.com/craftwood/storefront/internal/httpx"
	"github.com/craftwood/storefront/internal/media"
	"github.com/craftwood/storefront/internal/order"
)

func newRouter(products catalog.Repository, images media.Store, orders *order.Service, uploadsDir string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.Static("/uploads", uploadsDir)

	r.POST("/products", createProductHandler(products, images))
	r.GET("/products", listProductsHandler(products))
	r.GET("/products/:id", getProductHandler(products))
	r.PUT("/products/:id", updateProductHandler(products, images))
	r.DELETE("/products/:id", deleteProductHandler(products, images))

	r.POST("/orders", placeOrderHandler(orders))
	r.GET("/orders", listOrdersHandler(orders))
	r.GET("/orders/:id", getOrderHandler(orders))
	r.PUT("/orders/:id/status", updateOrderStatusHandler(orders))
	r.DELETE("/orders/:id", deleteOrderHandler(orders))

	return r
}

func renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, order.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

//
// ===== Catalog =====
//

func saveUploads(images media.Store, files []*multipart.FileHeader) ([]string, error) {
	var refs []string
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		ref, err := images.Save(fh.Filename, f)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func createProductHandler(repo catalog.Repository, images media.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		zhTitle := strings.TrimSpace(c.PostForm("zhTitle"))
		zhPrice := strings.TrimSpace(c.PostForm("zhPrice"))
		zhDesc := strings.TrimSpace(c.PostForm("zhDesc"))
		link := strings.TrimSpace(c.PostForm("link"))
		if zhTitle == "" || zhPrice == "" || zhDesc == "" || link == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "zhTitle, zhPrice, zhDesc and link are required"})
			return
		}

		var refs []string
		if form, err := c.MultipartForm(); err == nil && form != nil {
			refs, err = saveUploads(images, form.File["newImages"])
			if err != nil {
				renderError(c, err)
				return
			}
		}

		p := &catalog.Product{
			ID:       uuid.NewString(),
			ZhTitle:  zhTitle,
			EnTitle:  c.PostForm("enTitle"),
			ZhPrice:  zhPrice,
			EnPrice:  c.PostForm("enPrice"),
			ZhDesc:   zhDesc,
			EnDesc:   c.PostForm("enDesc"),
			Link:     link,
			Images:   refs,
			Category: c.PostForm("category"),
		}
		if p.Category == "" {
			p.Category = catalog.DefaultCategory
		}
		p.Image = p.MainImage()

		if err := repo.Create(c.Request.Context(), p); err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func listProductsHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := repo.List(c.Request.Context())
		if err != nil {
			renderError(c, err)
			return
		}
		if out == nil {
			out = []catalog.Product{}
		}
		c.JSON(http.StatusOK, out)
	}
}

func getProductHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// updateProductHandler merges the request over the stored product: blank
// fields keep their current value, the image list becomes the surviving
// existingImages entries plus any newly uploaded files.
func updateProductHandler(repo catalog.Repository, images media.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			renderError(c, err)
			return
		}

		var kept []string
		if raw := c.PostForm("existingImages"); raw != "" {
			var all []string
			if err := json.Unmarshal([]byte(raw), &all); err == nil {
				for _, ref := range all {
					if strings.HasPrefix(ref, "/uploads/") {
						kept = append(kept, ref)
					}
				}
			}
		}
		if form, err := c.MultipartForm(); err == nil && form != nil {
			refs, err := saveUploads(images, form.File["newImages"])
			if err != nil {
				renderError(c, err)
				return
			}
			kept = append(kept, refs...)
		}

		merge := func(dst *string, field string) {
			if v := c.PostForm(field); v != "" {
				*dst = v
			}
		}
		merge(&p.ZhTitle, "zhTitle")
		merge(&p.EnTitle, "enTitle")
		merge(&p.ZhPrice, "zhPrice")
		merge(&p.EnPrice, "enPrice")
		merge(&p.ZhDesc, "zhDesc")
		merge(&p.EnDesc, "enDesc")
		merge(&p.Link, "link")
		merge(&p.Category, "category")
		p.Images = kept
		p.Image = p.MainImage()

		if err := repo.Update(c.Request.Context(), p); err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "product updated", "images": p.Images})
	}
}

func deleteProductHandler(repo catalog.Repository, images media.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		p, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			renderError(c, err)
			return
		}
		ok, err := repo.Delete(c.Request.Context(), id)
		if err != nil {
			renderError(c, err)
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": catalog.ErrNotFound.Error()})
			return
		}
		// The product exclusively owns its image files; release them. A file
		// that is already gone is not worth failing the request over.
		for _, ref := range p.Images {
			if err := images.Remove(ref); err != nil {
				log.WithError(err).WithField("ref", ref).Warn("could not remove product image")
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}

//
// ===== Orders =====
//

type orderView struct {
	order.Order
	Items []order.Item `json:"items"`
}

func placeOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		items := make([]order.NewItem, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, order.NewItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
		}
		id, err := svc.PlaceOrder(c.Request.Context(), order.Customer{
			Name:          req.Name,
			Address:       req.Address,
			Email:         req.Email,
			Phone:         req.Phone,
			PaymentMethod: req.PaymentMethod,
			Size:          req.Size,
		}, items)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"order_id": id})
	}
}

func listOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.ListOrders(c.Request.Context())
		if err != nil {
			renderError(c, err)
			return
		}
		if out == nil {
			out = []order.Order{}
		}
		c.JSON(http.StatusOK, out)
	}
}

func getOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, items, err := svc.GetOrder(c.Request.Context(), c.Param("id"))
		if err != nil {
			renderError(c, err)
			return
		}
		if items == nil {
			items = []order.Item{}
		}
		c.JSON(http.StatusOK, orderView{Order: *o, Items: items})
	}
}

func updateOrderStatusHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		n, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": n})
	}
}

func deleteOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
			renderError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
